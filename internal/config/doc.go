// Package config provides configuration parsing for CloudDrop.
//
// The configuration is stored in clouddrop.json in the working directory.
// This package handles loading, saving, and validating configuration.
//
// # Configuration File Structure
//
//	{
//	  "server": {
//	    "host": "localhost",
//	    "port": 3000
//	  },
//	  "session": {
//	    "clipboardTimeout": "5s"
//	  },
//	  "upload": {
//	    "maxFileSize": 10485760,
//	    "timeout": "60s"
//	  },
//	  "staging": {
//	    "driver": "s3",
//	    "tempExpiry": "1h",
//	    "s3": {
//	      "bucket": "my-bucket",
//	      "prefix": "clouddrop/staging/"
//	    }
//	  },
//	  "log": {
//	    "level": "debug"
//	  }
//	}
//
// The remote upload API is not configurable here; it is compiled in.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.Address())
package config
