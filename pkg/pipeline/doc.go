// Package pipeline plans and runs the docs build and deploy pipeline.
//
// A run starts from a BuildContext. The Planner turns it into an ordered list of Steps,
// which a host engine such as Buildkite, or the in-process Executor, runs one segment
// between wait steps at a time. Actions maps each step to the build, deploy, search index
// or release action that implements it.
package pipeline
