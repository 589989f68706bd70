// Command libadmin runs operator tasks against the library database.
package main

func main() {
	Execute()
}
