// Package dagtest provides test doubles for graphs built with package dag:
// a scriptable MockUnit with int ports and call counters, a Recorder for
// step order across units, and a GraphBuilder that wires mock units by name.
package dagtest
