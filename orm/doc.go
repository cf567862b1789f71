/*
Package orm provides an easy to use db wrapper.

State space is broken into prefixed sections called buckets. Each bucket
contains only one type of model, addressed by a primary key, and may
possess secondary indexes (1:1 or 1:N) that are maintained on every write.

Keep the static types close to the call site: wrap a ModelBucket in a
type-safe bucket within the extension package.
*/
package orm
