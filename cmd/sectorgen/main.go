// Command sectorgen generates deterministic hex sectors of star systems,
// deep-space POIs, jump gates and faction territory, and archives them in SQLite.
package main

func main() {
	Execute()
}
