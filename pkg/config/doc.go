// Package config loads the YAML configuration shared by the meshcc tools.
//
// A minimal file:
//
//	gateway:
//	  transport: tcp
//	  address: 192.168.1.20:4123
//	logging:
//	  level: debug
//	  protocolLog: /tmp/meshcc.mlog
//	interview:
//	  timeout: 5s
//	nodes:
//	  - id: 2
//	    endpoints:
//	      - classes: [Version, Meter, 0x80]
//
// Command classes may be given by name or numeric id. Durations use Go
// duration syntax.
package config
