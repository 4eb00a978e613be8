package dataorg

// Command is one CLI operation together with its own options. Parse returns one and
// Main dispatches on its concrete type.
type Command interface {
	// Name returns the sub-command name.
	Name() string
}

// MigrateCommand creates or updates the schema of the configured backend.
type MigrateCommand struct{}

func (c *MigrateCommand) Name() string { return "migrate" }

// ImportCommand reads a JSON view document and stores it, replacing the view.
type ImportCommand struct {
	Path string
	// Object and View override the identifiers found in the document when set.
	Object string
	View   string
}

func (c *ImportCommand) Name() string { return "import" }

// ExportCommand writes a view as a JSON document. An empty Out or "-" writes to stdout;
// files are replaced atomically.
type ExportCommand struct {
	Object  string
	View    string
	Out     string
	WithIDs bool
}

func (c *ExportCommand) Name() string { return "export" }

// ViewsCommand lists the views of a digital object.
type ViewsCommand struct {
	Object string
}

func (c *ViewsCommand) Name() string { return "views" }

// ChildrenCommand lists one page of the children of a node. Without Node the root of
// Object/View is used.
type ChildrenCommand struct {
	Node   string
	Object string
	View   string
	First  int
	Max    int
}

func (c *ChildrenCommand) Name() string { return "children" }

// SubtreeCommand prints a node and its descendants down to Depth levels as JSON.
type SubtreeCommand struct {
	Node   string
	Object string
	View   string
	Depth  int
}

func (c *SubtreeCommand) Name() string { return "subtree" }

// SyncCommand copies every view of Object from the mirror's primary to its secondary.
type SyncCommand struct {
	Object string
}

func (c *SyncCommand) Name() string { return "sync" }

// VerifyCommand compares every view of Object between the mirror's two stores.
type VerifyCommand struct {
	Object string
}

func (c *VerifyCommand) Name() string { return "verify" }
