// This program performs key and signature tasks for a CeroCoin node.
package main

import "github.com/ardanlabs/cerocoin/app/tooling/cerocoin/cmd"

func main() {
	cmd.Execute()
}
