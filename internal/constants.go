// Author: Fredrik Thulin <fredrik@ispik.se>

package internal

// Software version, also recorded as generator in event logs
const Version = "0.3.0"

// Default number of groups to show/report. 0 means all of them.
const DefaultGroupCount = 0

// Loaders whose name contains this are our own and never measured
const DefaultExclude = "loadmeasure"

// Version of the event log format
const EventLogVersion = 1
