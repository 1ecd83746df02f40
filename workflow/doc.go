// Package workflow implements the Workflow Engine: it executes a
// types.WorkflowPlan (a DAG of types.TaskNode) by topological-wave
// scheduling, optionally derives a plan from a natural-language query via
// an LLM-backed decomposer, and summarizes the surviving subtask results
// via an LLM-backed aggregator.
package workflow
