// Package batch turns stored selections into file copies. BuildPlan derives
// one copy per selected name, and Executor prepares the output directory and
// runs the copies concurrently, recording each outcome without letting one
// failure stop the others.
package batch
