// Package config holds the element configuration surface spec §3 and §6
// describe: resource name, transport-config path, QoS, session-group,
// and the per-element-kind knobs (caps retransmission, compression,
// receive timeout, pad-naming strategy). It also decodes an optional
// YAML transport-config file with gopkg.in/yaml.v3 and parses the
// zenoh: URI form §6 names.
package config
