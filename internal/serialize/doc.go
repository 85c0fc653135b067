// Package serialize renders resolved constructors as Components.js JSON-LD.
//
// Every exported class becomes a component in a components file named after
// the declaration file it comes from. Constructor parameters become component
// parameters with ids of the form <prefix>:<file>#<Class>_<param>; hash and
// interface ranges that were expanded into fields become nested constructor
// arguments whose leaves are parameters themselves.
//
// ContextConstructor builds the matching JSON-LD context with a shortcut for
// each component.
package serialize
