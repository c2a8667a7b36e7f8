// Command meshcc interviews and controls command-class nodes through a
// gateway.
//
// Usage:
//
//	meshcc <command> [flags]
//
// Commands:
//
//	interview   Interview nodes and print what they support
//	shell       Interactive command shell
//	discover    Find gateways on the local network
//	serve       Run a simulated gateway
//	decode      Decode a frame or envelope given in hex
//	log         View or summarize protocol capture files
//	version     Print the version
//
// Examples:
//
//	# Interview the built-in demo device
//	meshcc interview --simulate
//
//	# Interview node 5 behind a TCP gateway, capturing traffic
//	meshcc interview --config gateway.yaml --node 5 --protocol-log run.mlog
//
//	# Show only wire-layer events of node 5
//	meshcc log view --layer wire --node 5 run.mlog
package main

import "github.com/meshcc/meshcc-go/cmd/meshcc/commands"

func main() {
	commands.Execute()
}
