// Package safeyaml loads YAML documents into plain Go values while refusing
// mappings that repeat a key. The duplicate check runs on the node tree before
// any value is decoded, so a repeated key is reported as a *DuplicateKeyError
// rather than surfacing later as a schema problem.
package safeyaml
