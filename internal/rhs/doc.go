// Package rhs builds derivative functions for the stepper out of gradient
// operators: a diffusion operator for real fields and a Schrodinger operator
// with an optional saturated cubic term and a switchable external potential
// for complex fields.
package rhs
