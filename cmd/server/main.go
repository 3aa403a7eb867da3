// Command server runs the Clarity ledger: the Connect RPC server plus
// migration and seeding helpers.
package main

func main() {
	Execute()
}
