// Package schema describes the shape of plugin entities and validates
// payloads against it at the store boundary.
//
// A plugin declares a Schema; plugins without stored entities leave
// Services nil and callers branch on that explicitly rather than on
// property presence. Validation is a contract check performed by the
// service-ORM layer on write (and on read), not a silent coercion pass:
// the only declared coercion is timestamp parsing from RFC 3339 strings.
package schema
