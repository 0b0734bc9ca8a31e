// Package catalog loads the reference dataset of institutions and builds the
// immutable index the matcher searches.
//
// Catalogs load from JSON (array or wrapper object), JSON Lines, YAML or
// Parquet. Entry names are the canonical keys persisted in selections, so the
// Catalog type offers name lookups alongside ordered access. BuildIndex turns
// each entry into precomputed match keys over its name, aliases and website.
package catalog
