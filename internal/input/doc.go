// Package input is the public entry point for pointer and keyboard events.
// The Handler owns the normalizer, the gesture classifier, and the draw
// dispatcher, and wraps every stage with error recovery and the performance
// governor. Hosts feed it raw platform events and collaborators observe the
// resulting canvas mutations through the dispatcher's store.
package input
