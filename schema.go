package xmlstore

// Schema and PRAGMA tuning for the Document Store. Grounded on
// original_source/src/document.rs (SQL_SIMPLE, SQL_WITH_TYPES, PRAGMAS);
// adapted from rusqlite batch-exec to individual database/sql Exec calls in
// the style of termfx-morfx/internal/db/db.go's Open().

// pragmas tunes the engine for a single-writer bulk load: durability of
// intermediate ingest state is worthless, since a failure aborts the whole
// load.
var pragmas = []string{
	"PRAGMA journal_mode = OFF",
	"PRAGMA synchronous = OFF",
	"PRAGMA cache_size = 1000000",
	"PRAGMA locking_mode = EXCLUSIVE",
	"PRAGMA temp_store = MEMORY",
	"PRAGMA page_size = 65536",
}

const schemaSimple = `
CREATE TABLE nodes (
	node_id INTEGER PRIMARY KEY,
	parent_node_id INTEGER NOT NULL,
	node_order INTEGER NOT NULL,

	node_type INTEGER NOT NULL,
	node_ns TEXT,
	node_name TEXT,
	node_value TEXT,

	buffer_position INTEGER NOT NULL
);

CREATE TABLE attrs (
	attr_id INTEGER PRIMARY KEY,
	attr_order INTEGER NOT NULL,
	attr_ns TEXT,
	attr_name TEXT NOT NULL,
	attr_value TEXT NOT NULL,

	parent_node_id INTEGER NOT NULL,
	buffer_position INTEGER NOT NULL
);
`

const schemaWithTypes = `
CREATE TABLE nodes (
	node_id INTEGER PRIMARY KEY,
	parent_node_id INTEGER NOT NULL,
	node_order INTEGER NOT NULL,

	node_type INTEGER NOT NULL,
	node_ns TEXT,
	node_name TEXT,
	node_value TEXT,

	buffer_position INTEGER NOT NULL,
	inferred_type TEXT NOT NULL
);

CREATE TABLE attrs (
	attr_id INTEGER PRIMARY KEY,
	attr_order INTEGER NOT NULL,
	attr_ns TEXT,
	attr_name TEXT NOT NULL,
	attr_value TEXT NOT NULL,

	parent_node_id INTEGER NOT NULL,
	buffer_position INTEGER NOT NULL,
	inferred_type TEXT NOT NULL
);
`

const sentinelRowsSimple = `
INSERT INTO nodes (node_id, parent_node_id, node_order, node_type, node_ns, node_name, node_value, buffer_position)
VALUES
	(0, 0, 0, 0, NULL, NULL, NULL, 0),
	(1, 0, 0, 1, NULL, NULL, NULL, 0);
`

const sentinelRowsWithTypes = `
INSERT INTO nodes (node_id, parent_node_id, node_order, node_type, node_ns, node_name, node_value, buffer_position, inferred_type)
VALUES
	(0, 0, 0, 0, NULL, NULL, NULL, 0, 'empty'),
	(1, 0, 0, 1, NULL, NULL, NULL, 0, 'empty');
`

// indexStatements are created only after ingest completes, to avoid paying
// index-maintenance cost per row.
var indexStatements = []string{
	"CREATE INDEX idx_nodes_parent ON nodes(parent_node_id)",
	"CREATE INDEX idx_attrs_parent ON attrs(parent_node_id)",
	"CREATE INDEX idx_nodes_name ON nodes(node_name)",
	"CREATE INDEX idx_nodes_element ON nodes(node_type) WHERE node_type = 1",
	"CREATE INDEX idx_nodes_type_parent ON nodes(node_type, parent_node_id)",
	"CREATE INDEX idx_attrs_name ON attrs(attr_name)",
}
