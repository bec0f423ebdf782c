// Package config provides configuration parsing for atomdemo.
//
// The configuration is stored in atomdemo.json (or atomdemo.yaml /
// atomdemo.yml) in the working directory. Every field is optional; missing
// values fall back to defaults and command-line flags override the file.
//
// # Configuration File Structure
//
//	{
//	  "server": {
//	    "host": "localhost",
//	    "port": 3000,
//	    "readTimeout": "60s",
//	    "writeTimeout": "10s",
//	    "shutdownTimeout": "5s"
//	  },
//	  "form": {
//	    "fields": 1000
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "atomdemo",
//	    "path": "/metrics"
//	  },
//	  "tracing": {
//	    "enabled": true,
//	    "tracerName": "atomdemo"
//	  }
//	}
package config
