// Package features maps a password to the fixed, ordered vector of lexical
// features the classifier is trained on.
//
// The order of All is the column order of every dataset and the input order
// of every model. Adding, removing or reordering entries invalidates
// previously built datasets and persisted models.
//
// Every feature is a pure function of the password. The empty password is
// valid input and yields zero for every feature.
package features
