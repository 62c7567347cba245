// Package tools contains the deterministic clinical calculators exposed
// through the registry: the SOFA organ-failure score, the drug interaction
// checker, the lab panel interpreter, and the weight-based dosage
// calculator.
//
// Every tool validates its parameters against a typed schema and decodes
// them into a concrete struct before any computation runs; tool logic never
// reads the raw parameter map.
package tools
