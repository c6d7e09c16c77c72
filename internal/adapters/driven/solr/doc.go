// Package solr provides a SchemaTransport that talks to a remote Solr node's
// Schema API over HTTP.
//
// Requests go to {BaseURL}/{collection}/schema{path}. Reads are GETs with
// wt=json; updates are JSON POSTs. Non-2xx responses are returned to the
// caller with their bodies intact so the engine's rejection messages can be
// surfaced. Only network failures and cancelled contexts produce errors.
//
// Authentication is either HTTP basic (Username/Password) or a bearer token
// (Token), attached through an oauth2 static token source.
package solr
