/*
Package utils contains decorators shared by every route of the ledger:
panic recovery, transaction logging, savepoints and action tagging.
*/
package utils
