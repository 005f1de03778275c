// Package errors provides coded errors for the pirateborg outcome engine.
//
// Every failure that leaves a pipeline or a dispatcher carries a Code so the
// host can decide how to surface it:
//
//   - CodeInvalidArgument: malformed dice formula, bad action input
//   - CodeNotFound: unknown chat message, outcome or actor
//   - CodeFailedPrecondition: a builder step ran out of order (test without roll)
//   - CodeUnimplemented: a button type with no registered handler
//   - CodeInternal: storage failures and anything not classified
//
// # Basic Usage
//
//	err := errors.InvalidArgumentf("unexpected %q at %d", tok, pos)
//
//	if err := repo.SetFlag(ctx, input); err != nil {
//	    return errors.Wrap(err, "failed to persist outcomes")
//	}
//
// Wrap keeps the code of an existing *Error, so a formula error raised deep in
// a factory is still IsInvalidArgument when it reaches the caller.
//
// # Validation Errors
//
//	vb := errors.NewValidationBuilder()
//	if c.Evaluator == nil {
//	    vb.RequiredField("Evaluator")
//	}
//	return vb.Build()
package errors
