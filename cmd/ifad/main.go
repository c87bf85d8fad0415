// Command ifad filters a gene list and its GAF annotation file down to the
// genes matching a segment query, either as a one-shot CLI run or as an HTTP
// service.
package main

func main() {
	Execute()
}
