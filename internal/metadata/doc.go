// Package metadata loads the linked-data metadata of a package.
//
// A package declares its components in package.json:
//
//	{
//	  "name": "my-package",
//	  "version": "1.2.0",
//	  "lsd:module": "https://linkedsoftwaredependencies.org/bundles/npm/my-package",
//	  "lsd:components": "components/components.jsonld",
//	  "lsd:contexts": {
//	    "https://linkedsoftwaredependencies.org/bundles/npm/my-package/^1.0.0/components/context.jsonld": "components/context.jsonld"
//	  },
//	  "lsd:importPaths": {
//	    "https://linkedsoftwaredependencies.org/bundles/npm/my-package/^1.0.0/components/": "components/"
//	  }
//	}
//
// lsd:module, lsd:components and lsd:contexts are required. Every context
// file is read and must hold a JSON object.
package metadata
