// Package cursor implements lazy, resource-owning feature sequences and the
// decorators that enforce query clauses in software.
//
// A pipeline is built bottom-up: a source adapts the store's native cursor,
// then Intersecting, Where, Skip and Take wrap it as needed. Updatable and
// Appending add write capability on top of a pipeline. Every cursor must be
// closed; Close is idempotent and releases the whole chain exactly once.
//
//	r := cursor.Take(cursor.Where(src, f), 10)
//	defer r.Close()
//	for {
//	    ok, err := r.HasNext()
//	    if err != nil || !ok {
//	        break
//	    }
//	    f, _ := r.Next()
//	    ...
//	}
package cursor
