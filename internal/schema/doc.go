// Package schema reads the optional YAML declaration file.
//
// A schema file declares validation for structs without touching their
// source, using the same argument grammar as struct tags:
//
//	version: "1"
//	structs:
//	  - name: Place
//	    validate: checkPlace
//	    fields:
//	      Lat: sanitize.Latitude
//	      Link: opt(sanitize.SecureURL), string
//
// Entries keep their file positions so that diagnostics point into the
// schema file.
package schema
