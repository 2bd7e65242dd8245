// Package abi parses compiled Solidity artifacts and extracts the custom
// error definitions declared in their ABI arrays.
package abi

// Parameter is a single input of an ABI entry.
type Parameter struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Entry is one element of an artifact's "abi" array. Entries carry a type
// discriminator ("error", "function", "event", ...); fields that only apply
// to other entry kinds are ignored.
type Entry struct {
	Type   string      `json:"type"`
	Name   string      `json:"name"`
	Inputs []Parameter `json:"inputs"`
}

// Document is a compiled artifact as produced by foundry or hardhat.
// Every field is optional; artifacts without an "abi" array simply yield
// no errors. ContractName and SourceName are hardhat conventions, foundry
// artifacts carry neither.
type Document struct {
	ABI          []Entry `json:"abi"`
	ContractName string  `json:"contractName"`
	SourceName   string  `json:"sourceName"`
}

// ExtractedError is a custom error pulled out of an artifact, before a
// selector has been attached.
type ExtractedError struct {
	// Name is the bare error name, e.g. "Unauthorized".
	Name string
	// Signature is the canonical form "Name(type1,type2,...)" using the
	// exact type text from the ABI. No alias normalization is applied:
	// "uint" and "uint256" produce different signatures.
	Signature string
	// InputNames and InputTypes are position-aligned and never nil.
	InputNames []string
	InputTypes []string
	// Source is the Solidity file the error was declared in, or "Unknown".
	Source string
}
