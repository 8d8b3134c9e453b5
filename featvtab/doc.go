// Package featvtab implements a SQLite virtual table that queries a feature
// dataset. Spatial bounds and CEL predicates given as constraints are handed
// to the dataset, which pushes down what the store can evaluate and filters
// the rest in software.
//
//	CREATE VIRTUAL TABLE roads_q USING feat(roads);
//	SELECT id, doc FROM roads_q
//	WHERE bbox MATCH '0,0,10,10' AND filter = 'properties.kind == "road"';
//
// Features:
//   - bbox MATCH 'minx,miny,maxx,maxy' spatial constraint
//   - filter = '<cel>' predicate constraint
//   - doc column carries the GeoJSON Feature of each row
package featvtab
