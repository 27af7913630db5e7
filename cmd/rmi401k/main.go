// Package main provides the entry point for the rmi401k CLI.
//
// rmi401k logs into the RMI 401k retirement portal, then prints the account
// balance and the recent transaction history.
//
// Usage:
//
//	rmi401k
//	rmi401k --months 6 --username "Jane Doe"
//
// See --help for all available options.
package main

func main() {
	Execute()
}
