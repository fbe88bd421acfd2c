// Pagescope - silent capability-usage observer.
// Wrap. Observe. Emit.
package main

func main() {
	Execute()
}
