// Package domain contains the core business entities and value objects of
// the application: generation requests and records, structured documents,
// and the long-running operation handle. It is independent of any specific
// provider or delivery mechanism.
package domain
