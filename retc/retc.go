// Package retc holds the coarse return codes, step and method values of the intersect action
// together with the error types returned by the engine.
package retc

// OK - Return code reported when a step completed
const OK uint32 = 0x102

// Failure - Return code reported when a step failed
const Failure uint32 = 0x104

// Steps of the multi invocation protocol, 4 is not used.
const (
	StageIn        uint32 = 1
	StageOutTables uint32 = 2
	Compute        uint32 = 3
	StageOutResult uint32 = 5
)

// Intersection methods
const (
	HashMethod uint32 = 1
	SortMethod uint32 = 2
)

// MethodDone - Added to the method register once the probe has completed
const MethodDone uint32 = 0x1000
