// Package format reads and writes configuration trees as JSON, YAML or
// TOML documents.
//
// Property values go through a [codec.Codec], so a document may contain
// maps tagged with a "class" key:
//
//	{
//	  "hud": {
//	    "scale": 1.5,
//	    "color": {"class": "github.com/polyfrost/go-oneconfig/adapter.Color", "value": 4294901760}
//	  }
//	}
//
// Untagged maps are nested trees. [LoadInto] and [Persister.ApplyValue]
// load a document into an existing tree, converting each value to the
// type of the property it replaces.
package format
