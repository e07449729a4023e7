// Package postgresengine persists model.Model based records in PostgreSQL and runs the
// attribute callbacks lifecycle around every save, inside the save's transaction.
//
// A Store is bound to one model.Schema. Text array attributes are stored as text[],
// text map attributes as jsonb. SQL is built with goqu and executed through pgxpool.Pool,
// sql.DB or sqlx.DB.
//
// Save runs the before side of the registered observers, executes the INSERT or UPDATE,
// runs the after side and commits. A veto (attrcallbacks.ErrSaveRejected) or any error after
// the statement rolls the transaction back and leaves the record unsaved.
//
// Usage:
//
//	registry := attrcallbacks.NewRegistry()
//	_ = attrcallbacks.RegisterMethods(registry, &Widget{})
//	interceptor, _ := attrcallbacks.NewInterceptor(registry)
//
//	store, err := postgresengine.NewStoreFromPGXPool(pool, widgetSchema,
//		postgresengine.WithObservers(interceptor),
//		postgresengine.WithLogger(slog.Default()))
//	if err != nil {
//		// handle error
//	}
//
//	err = store.Save(ctx, widget)
package postgresengine
