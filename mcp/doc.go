// Package mcp defines the Model Context Protocol wire types spoken by the
// webpuppet server: the initialize handshake, the tools surface, and the
// content blocks carried in tool results.
//
// The server advertises only the tools capability. Resources, prompts,
// logging and sampling are not part of its surface, so their shapes are
// deliberately absent here.
package mcp
