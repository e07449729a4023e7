// Package attrcallbacks provides per-attribute change hooks for persistable records.
//
// When a record is saved, every attribute that changed is offered to hooks registered for it:
//   - before_<attr>_change and after_<attr>_change (plus <attr>_changed) for any attribute
//   - before_<attr>_add, before_<attr>_remove, after_<attr>_add, after_<attr>_remove for
//     collection-valued attributes (sequences and maps), once per added or removed element
//
// Before hooks may veto the save by returning false, which surfaces as ErrSaveRejected.
// After hooks run once the statement was executed, inside the same transaction, and their
// errors make the transaction roll back.
//
// Key types:
//   - Registry: explicit hook registration, or RegisterMethods for convention-named methods
//   - Dispatcher: runs the hooks of one ChangeEntry
//   - Interceptor: an Observer dispatching a whole ChangeSet with logging, metrics and tracing
//   - Lifecycle: the ordered observer chain a persistence layer runs around its statement
//
// Common usage pattern:
//
//	registry := attrcallbacks.NewRegistry().
//		BeforeChange("name", func(ctx context.Context, rec attrcallbacks.Record, before, after any) (bool, error) {
//			return after != "", nil
//		}).
//		AfterAdd("colors", func(ctx context.Context, rec attrcallbacks.Record, el attrcallbacks.Element) error {
//			log.Printf("color added: %v", el.Value)
//			return nil
//		})
//
//	interceptor, err := attrcallbacks.NewInterceptor(registry, attrcallbacks.WithLogger(slog.Default()))
//	if err != nil {
//		// handle error
//	}
//
//	lifecycle := attrcallbacks.NewLifecycle(interceptor)
//	changes, err := lifecycle.Run(ctx, record, persistInsideTx)
package attrcallbacks
