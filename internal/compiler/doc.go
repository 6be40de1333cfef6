// Package compiler runs the reactive property pipeline over one scene:
//
//	resolve conditions -> collect rules -> fold -> solve -> propagate syncs
//	                                        ^________________________|
//	-> delete mesh channels -> bake constants -> synthesize layers
//
// Folding, solving and propagation repeat until folding stops changing the
// bucket set. Each Compile call is an independent run numbered by the
// compiler's generation counter and shares nothing with other runs.
package compiler
