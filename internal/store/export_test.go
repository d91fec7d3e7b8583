package store

var DedupKeepLast = dedupKeepLast
