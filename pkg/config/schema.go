package config

const schema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "definitions": {
    "strings": {"type": "array", "items": {"type": "string"}},
    "host": {"type": "string", "pattern": "^[a-z0-9]([-a-z0-9.]*[a-z0-9])?$"}
  },
  "properties": {
    "name": {"type": "string"},
    "shortname": {"type": "string", "pattern": "^[a-z0-9][-a-z0-9]*$"},
    "description": {"type": "string"},
    "mainline": {"type": "string", "minLength": 1},
    "allowPRs": {"type": "boolean"},
    "commitEnv": {"type": "string", "minLength": 1},
    "image": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "repository": {"type": "string", "minLength": 1},
        "rockerfile": {"type": "string"},
        "context": {"type": "string"},
        "cacheDirs": {"$ref": "#/definitions/strings"},
        "packageJSON": {"type": "string"},
        "builderQueue": {"type": "string"},
        "verify": {"type": "boolean"},
        "registryUserEnv": {"type": "string"},
        "registryPasswordEnv": {"type": "string"}
      }
    },
    "deploy": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "clusterName": {"type": "string"},
        "chart": {"type": "string", "minLength": 1},
        "releasePrefix": {"type": "string"},
        "projectName": {"type": "string"},
        "deploymentType": {"type": "string"},
        "timeout": {"type": "string"},
        "values": {"type": "object"},
        "valuesPatches": {"$ref": "#/definitions/strings"}
      }
    },
    "hosts": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "production": {"$ref": "#/definitions/host"},
        "staging": {"$ref": "#/definitions/host"},
        "previewDomain": {"$ref": "#/definitions/host"},
        "previewPrefix": {"type": "string"}
      }
    },
    "release": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "tagPrefix": {"type": "string"},
        "remote": {"type": "string", "minLength": 1}
      }
    },
    "searchIndex": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "command": {"type": "string", "minLength": 1},
        "args": {"$ref": "#/definitions/strings"}
      }
    },
    "github": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "repository": {"type": "string", "pattern": "^([^/]+/[^/]+)?$"},
        "tokenEnv": {"type": "string"},
        "baseURL": {"type": "string"}
      }
    },
    "metrics": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "pushgateway": {"type": "string"},
        "job": {"type": "string"},
        "labels": {
          "type": "object",
          "additionalProperties": {"type": "string"}
        },
        "buckets": {
          "type": "array",
          "items": {"type": "number", "exclusiveMinimum": 0}
        }
      }
    }
  }
}`
