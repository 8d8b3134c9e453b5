// Command geofeat inspects and loads feature datasets stored in SQLite.
//
//	geofeat datasets
//	geofeat import roads roads.geojson
//	geofeat read roads --bbox 0,0,10,10 --filter 'properties.kind == "road"' --limit 5
//	geofeat count roads --bbox 0,0,10,10
//	geofeat bounds roads
//	geofeat changes roads --since 10
//
// Flags can also be set through GEOFEAT_* environment variables or a .env file.
package main

import "os"

func main() {
	os.Exit(execute(os.Args[1:]))
}
