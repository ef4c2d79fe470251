// Package passwords generates random passwords from character classes.
package passwords
