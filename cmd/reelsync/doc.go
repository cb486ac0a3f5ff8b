// Command reelsync reconciles a persistent video catalog with the files
// that actually exist under its watched roots.
package main
