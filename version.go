package main

var Version = "current"
