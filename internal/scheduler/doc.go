// Package scheduler holds the pure timetable algorithms: time grid generation,
// conflict detection and greedy room/faculty allocation. Nothing in this
// package performs I/O; services feed it records loaded from storage and
// persist whatever it decides.
package scheduler
