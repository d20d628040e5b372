package db

// SchemaSQL defines the tables used by catgallery.
const SchemaSQL = `
    -- ==========================================================================
    -- BLOB TABLE
    -- ==========================================================================
    -- One record per named blob; the record id is the blob key.
    DEFINE TABLE IF NOT EXISTS blob SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS data ON blob TYPE string;
    DEFINE FIELD IF NOT EXISTS updated ON blob TYPE datetime DEFAULT time::now();
`
