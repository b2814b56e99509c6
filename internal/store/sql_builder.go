package store

import sq "github.com/Masterminds/squirrel"

// psql is the shared statement builder configured for PostgreSQL's
// $N placeholders. All dynamic queries in this package go through it.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
