// Package resolver constructs the DNS transports used by domainintel: a
// *net.Resolver for forward address resolution and a wire-format exchanger
// for typed record queries. Both tunnel through a SOCKS5 proxy when one is
// configured so lookups do not leak to the local resolver.
package resolver
