// Command folio runs the portfolio server and its maintenance tasks.
package main

func main() {
	Execute()
}
