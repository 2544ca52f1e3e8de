// Package git reads the revision of the repository that holds a board
// project so build reports and history rows can be traced to a commit.
package git
