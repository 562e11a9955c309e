package rental

import (
	"context"
	"log/slog"

	"rentable/internal/app/policies"
	"rentable/internal/app/uow"
)

// beginUnit reuses a unit of work from context (transaction middleware) or
// starts a managed one. The returned cleanup rolls back and is nil when the
// unit is externally managed.
func beginUnit(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, context.Context, func(), error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit, ctx, nil, nil
	}
	if factory == nil {
		return nil, ctx, nil, uow.ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, ctx, nil, err
	}
	execCtx := ctx
	if injector, ok := unit.(interface {
		InjectContext(context.Context) context.Context
	}); ok {
		execCtx = injector.InjectContext(ctx)
	}
	execCtx = uow.ContextWithUnitOfWork(execCtx, unit)
	cleanup := func() {
		_ = unit.Rollback(execCtx)
	}
	return unit, execCtx, cleanup, nil
}

// notify is fire-and-forget: delivery failures are logged and never abort the
// calling workflow.
func notify(ctx context.Context, notifier policies.Notifier, logger *slog.Logger, to, event string, payload any) {
	if notifier == nil {
		return
	}
	if err := notifier.Send(ctx, to, event, payload); err != nil && logger != nil {
		logger.Warn("notification delivery failed", "to", to, "event", event, "error", err)
	}
}
