// Command heapctl replays allocation traces and inspects heapkit heap files.
package main

func main() {
	execute()
}
