package sql

import "embed"

// Migrations holds the schema DDL, applied in filename order.
//
//go:embed migrations
var Migrations embed.FS

//go:embed queries/lookup_ptp.sql
var LookupPTP string

//go:embed queries/lookup_mue.sql
var LookupMUE string

//go:embed queries/lookup_aoc.sql
var LookupAOC string

//go:embed queries/delete_ptp_partition.sql
var DeletePTPPartition string

//go:embed queries/delete_mue_partition.sql
var DeleteMUEPartition string

//go:embed queries/delete_aoc.sql
var DeleteAOC string
