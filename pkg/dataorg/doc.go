// Package dataorg provides the dataorg command: the Organizer service facade over a
// store.Store plus a command-line interface for importing, exporting and browsing the
// file trees (views) of digital objects.
//
// # Getting Started
//
// For detailed usage information, see [github.com/surrealdb/dataorg/pkg/dataorg.Main].
//
//	# Create the schema in a local SQLite file
//	dataorg --sqlite-path ./do.db migrate
//
//	# Store a JSON view document, replacing any previous version of the view
//	dataorg --sqlite-path ./do.db import tree.json --object doi:10.1000/1 --view raw
//
//	# Browse it
//	dataorg --sqlite-path ./do.db views --object doi:10.1000/1
//	dataorg --sqlite-path ./do.db children --object doi:10.1000/1 --view raw
//	dataorg --sqlite-path ./do.db subtree --node doi:10.1000/1:raw:400 --depth 1
//
//	# Write it back out
//	dataorg --sqlite-path ./do.db export --object doi:10.1000/1 --view raw --out raw.json
//
// # Backends
//
// The nested-set backends (postgres, sqlite) store each node with its arrival and
// departure steps; node ids carry the arrival step. The graph backends (surrealdb, memory)
// store nodes as vertices joined by positioned child edges; node ids carry the vertex id.
// Node ids are therefore only valid for the backend that issued them.
//
// The mirror backend combines two of them. See [github.com/surrealdb/dataorg/pkg/store/mirror]
// for the modes and the sync and verify commands for moving views between backends.
//
// # JSON View Format
//
//	{
//	  "objectId": "doi:10.1000/1",
//	  "viewName": "raw",
//	  "root": {
//	    "name": "root",
//	    "type": "CollectionNode",
//	    "children": [
//	      {"name": "a.txt", "type": "FileNode", "locator": {"scheme": "file", "value": "file:///a.txt"}}
//	    ]
//	  }
//	}
//
// Children appear in order. Attributes are a string map; export --with-ids adds each
// node's nodeId.
package dataorg
