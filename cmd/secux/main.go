// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

// Command secux manages hardware accounts and signs payloads with a SecuX
// device.
package main

import (
	"os"

	secux "github.com/luxfi/secux-go"
)

var version = "dev" // set by the linker

func main() {
	root := newRootCmd(secux.NewAdmin(), secux.TransportSupported)
	if err := root.Execute(); err != nil {
		// cobra already printed the error
		os.Exit(1)
	}
}
