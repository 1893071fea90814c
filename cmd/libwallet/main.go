// Command libwallet is a command line front end for the wallet core:
// mnemonic setup, key derivation, legacy keystore import and offline or
// online P2PKH spends.
package main

import (
	"os"

	log "github.com/sirupsen/logrus"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	a := newApp(os.Stdin, os.Stdout, os.Stderr)
	defer a.close()
	if err := a.rootCmd().Execute(); err != nil {
		log.Error(err)
		a.close()
		os.Exit(1)
	}
}
