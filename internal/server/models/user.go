// Package models defines the persistent entities of the progresslapse
// server.
package models

// User is the owner of progress media. Identity issuance lives outside
// this server; only the premium flag matters here, because it gates the
// weekly compilation quota.
type User struct {
	ID        string
	UserName  string
	IsPremium bool
}
