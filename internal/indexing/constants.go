package indexing

// On-disk layout of the recipe collection, relative to the data directory.
const (
	// RecipesDir holds one {id}.json file per recipe
	RecipesDir = "recipes"

	// IndexFile is the derived projection of every recipe file
	IndexFile = "index.json"

	// RecipeExt is the extension of recipe files
	RecipeExt = ".json"

	// RebuildConcurrency bounds parallel recipe reads during a rebuild
	RebuildConcurrency = 8
)
