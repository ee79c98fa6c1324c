// Package record serializes the credential collection to the line-oriented
// text that gets encrypted.
//
// Each entry is one line:
//
//	id;username;password
//
// Literal semicolons inside username and password are replaced with the
// sentinel "###semicolon###". Newlines are not escaped, so Collection.Put
// refuses values containing them.
package record
