// Package code implements the Code strategy (§4.4): LLM-generated program,
// a validate/revise retry loop against sandbox.Validator, execution inside
// sandbox.SandboxExecutor, and a natural-language explanation of the
// result, returned as a types.CodeResult.
package code
